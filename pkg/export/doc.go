// Package export packages a training solution into a portable archive and
// recovers it again.
//
// An archive holds a manifest.json with the ordered answers and an assets/
// directory with the files referenced by the section's cases. Export and
// import stage their files in temporary directories that are always removed,
// and run as cancellable Tasks so a session can keep handling events while an
// archive is written.
package export
