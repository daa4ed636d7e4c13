package fs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"vfsemu/internal/logging"
	"vfsemu/internal/vfs"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	mountLogger = logging.GetLogger().WithPrefix("mount")
)

// VFSMount exposes a session's tree as a read-only FUSE filesystem.
// The root directory always reads the session's active tree, so a reload is
// visible through the mount without remounting.
type VFSMount struct {
	session *vfs.Session
	conn    *fuse.Conn
	uid     uint32 // User ID reported for every node
	gid     uint32 // Group ID reported for every node
	served  chan error
}

// NewVFSMount creates a FUSE filesystem over session. Node ownership
// defaults to the current process and can be overridden with PUID/PGID.
func NewVFSMount(session *vfs.Session) *VFSMount {
	uid := safeIntToUint32(os.Getuid())
	gid := safeIntToUint32(os.Getgid())

	if puidStr := os.Getenv("PUID"); puidStr != "" {
		if puid, err := strconv.ParseUint(puidStr, 10, 32); err == nil {
			uid = uint32(puid)
			mountLogger.Debug("Using PUID from environment: %d", uid)
		}
	}
	if pgidStr := os.Getenv("PGID"); pgidStr != "" {
		if pgid, err := strconv.ParseUint(pgidStr, 10, 32); err == nil {
			gid = uint32(pgid)
			mountLogger.Debug("Using PGID from environment: %d", gid)
		}
	}

	return &VFSMount{
		session: session,
		uid:     uid,
		gid:     gid,
	}
}

// Root implements the fusefs.FS interface, returning the root directory node.
func (m *VFSMount) Root() (fusefs.Node, error) {
	mountLogger.Trace("Serving root of session %p", m.session)
	return &Dir{mount: m}, nil
}

func waitForMount(mountpoint string) error {
	for i := 0; i < 30; i++ {
		info, err := os.Stat(mountpoint)
		if err == nil && info.IsDir() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("mount point not available after 3 seconds")
}

// Mount mounts the filesystem read-only at mountPoint and serves it in the
// background until Unmount is called.
func (m *VFSMount) Mount(mountPoint string) error {
	mountLogger.Info("Mounting VFS at %s", mountPoint)
	mountLogger.Debug("UID: %d, GID: %d", m.uid, m.gid)

	c, err := fuse.Mount(mountPoint,
		fuse.FSName("vfsemu"),
		fuse.Subtype("vfsemu"),
		fuse.ReadOnly(),
		fuse.DefaultPermissions(),
		fuse.AsyncRead(),
	)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	m.conn = c
	m.served = make(chan error, 1)

	go func() {
		err := fusefs.Serve(c, m)
		if err != nil {
			mountLogger.Error("FUSE server error: %v", err)
		}
		m.served <- err
	}()

	if err := waitForMount(mountPoint); err != nil {
		c.Close()
		return fmt.Errorf("mount point failed to initialize: %w", err)
	}

	mountLogger.Info("VFS mounted at %s", mountPoint)
	return nil
}

// Unmount cleanly unmounts the filesystem and waits for the server to stop.
func (m *VFSMount) Unmount(mountPoint string) error {
	if m.conn == nil {
		return nil
	}

	mountLogger.Info("Unmounting %s", mountPoint)
	if err := fuse.Unmount(mountPoint); err != nil {
		mountLogger.Error("Unmount failed: %v", err)
		return err
	}
	err := <-m.served
	m.conn.Close()
	m.conn = nil
	return err
}
