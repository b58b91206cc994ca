/*
Package dsl provides a fluent builder for training sections.

It is an alternative to section files for tests, embedded content and
generated sections:

	loader, err := dsl.New("triage").
		Name("Triage").
		Instruction("Read each case and write what you would do.").
		Case("intake").
		Question("A patient arrives with chest pain.").
		Mentor("Check vital signs first.").
		Go("referral").
		Case("referral").
		Question("The ECG shows ST elevation.").
		Mentor("Refer to cardiology.").
		Total().
		End().
		Loader()

Use Builder.Build to get the domain.Section, or Builder.Loader for a
ports.SectionLoader that serves it under its ID.
*/
package dsl
