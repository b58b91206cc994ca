package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/mentor/pkg/domain"
)

func TestGraphErrorsShareFamily(t *testing.T) {
	errs := []error{
		domain.ErrEmptyCaseID,
		&domain.CyclicFlowError{NodeKey: "A", Steps: 3},
		&domain.DanglingReferenceError{From: "A", Ref: "missing"},
		&domain.DuplicateCaseError{CaseID: "A"},
	}
	for _, err := range errs {
		assert.ErrorIs(t, fmt.Errorf("load: %w", err), domain.ErrInvalidFlow, err.Error())
	}
}

func TestIllegalTransitionError(t *testing.T) {
	err := &domain.IllegalTransitionError{
		Event:   domain.EventAdvance,
		NodeKey: "A",
		State:   domain.StateQuestionShown,
	}
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Contains(t, err.Error(), "advance")
	assert.Contains(t, err.Error(), "A")
}

func TestExportImportErrorsUnwrap(t *testing.T) {
	cause := errors.New("disk full")

	exp := &domain.ExportError{Path: "/tmp/out.zip", Err: cause}
	assert.ErrorIs(t, exp, cause)
	assert.Contains(t, exp.Error(), "/tmp/out.zip")

	imp := &domain.ImportError{Path: "/tmp/in.zip", Err: domain.ErrSectionMismatch}
	assert.ErrorIs(t, imp, domain.ErrSectionMismatch)

	var target *domain.ImportError
	assert.ErrorAs(t, fmt.Errorf("wrapped: %w", imp), &target)
	assert.Equal(t, "/tmp/in.zip", target.Path)
}

func TestMentorPolicyNormalize(t *testing.T) {
	assert.Equal(t, domain.PolicyMentorRequired, domain.MentorPolicy("").Normalize())
	assert.Equal(t, domain.PolicyMentorRequired, domain.MentorPolicy("whatever").Normalize())
	assert.Equal(t, domain.PolicyMentorOptional, domain.PolicyMentorOptional.Normalize())
}
