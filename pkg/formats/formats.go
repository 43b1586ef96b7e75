// Package formats reads mesh sources and writes LMOD documents.
package formats

// Note: LMOD writing is implemented in lmod.go
// Note: OBJ and YAML snapshot readers live in obj.go and snapshot.go
