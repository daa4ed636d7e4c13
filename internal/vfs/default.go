package vfs

// BuildDefault returns the fallback tree used when no source is given or
// loading fails:
//
//	/home/readme.txt   "Hello VFS Emulator!"
//	/home/note.txt     "This is a note"
//	/home/documents/
//	/home/downloads/
//	/tmp/
//	/var/
func BuildDefault() *Tree {
	b := NewBuilder()

	home := b.Dir(RootID, "home")
	b.File(home, "readme.txt", "SGVsbG8gVkZTIEVtdWxhdG9yIQ==")
	b.File(home, "note.txt", " VGhpcyBpcyBhIG5vdGU=")
	b.Dir(home, "documents")
	b.Dir(home, "downloads")

	b.Dir(RootID, "tmp")
	b.Dir(RootID, "var")

	return b.Build()
}
