/*
Package session implements training sessions and their persistence orchestration.

A Session binds a Section to a traversal engine, serializes the events sent to
it, fans the resulting effects out to subscribers and owns at most one export
or import Task at a time. The Manager keeps one open Session per section and
coordinates snapshot access across replicas with reference-counted local locks
and an optional distributed locker.
*/
package session
