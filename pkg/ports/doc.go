/*
Package ports defines the driven ports (interfaces) of the knitout compile service.

These interfaces decouple compilation from the places its results live, so the
same service runs against memory, the local filesystem, Redis or S3.

# Key Interfaces

  - ArtifactStore: persists compiled programs and their statistics by id.
  - DistributedLocker: serialises compilation of the same input across replicas.
*/
package ports
