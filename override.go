package pantry

// Hook interfaces allow types to bypass reflection-based processing.
// When a type implements one of these interfaces, the archive calls the
// interface method instead of walking the type's fields.
//
// Methods may be declared on the value or the pointer receiver; archives always
// hold an addressable value when they look for hooks.

// Saver writes a value to an OArchive.
// A type implementing Saver must also implement Loader.
type Saver interface {
	// SaveArchive writes the receiver's members. version is the class version
	// recorded in the stream.
	SaveArchive(oa *OArchive, version uint32) error
}

// Loader restores a value from an IArchive.
// A type implementing Loader must also implement Saver.
type Loader interface {
	// LoadArchive reads the receiver's members. version is the class version
	// found in the stream, which may be older than the current version.
	LoadArchive(ia *IArchive, version uint32) error
}

// Serializable drives both directions with a single method.
// List the members with ar.Process in order; the archive decides whether they
// are written or read.
type Serializable interface {
	Serialize(ar Archive, version uint32) error
}

// Versioned supplies the class version written ahead of a value's members.
// Types without it use the version set with SetVersion, or 0.
type Versioned interface {
	ArchiveVersion() uint32
}

// ConstructSaver writes the constructor arguments of a type that is rebuilt by a
// constructor registered with RegisterConstructor.
//
// It only applies to pointees: values reached through a pointer. Values held
// directly are archived through their member hooks or by reflection.
type ConstructSaver interface {
	SaveConstruct(oa *OArchive) error
}
