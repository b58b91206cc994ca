/*
Package ports defines the driven ports (interfaces) of the mentor engine.

These interfaces decouple the training session from external implementations, allowing
it to work with various section sources, snapshot backends and archive formats.

# Key Interfaces

  - SectionLoader: Loads a Section definition (e.g., from a YAML file, a Loam repository or memory).
  - SnapshotStore: Persists and loads session Snapshots.
  - Archiver: Packs a staging directory into a portable archive and unpacks it again.
  - DistributedLocker: Provides distributed locking for concurrent session access.
*/
package ports
