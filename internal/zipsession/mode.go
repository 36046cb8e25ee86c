package zipsession

import "os"

// Unix file-type constants the ZIP format's "creator Unix" external
// attributes encode in their high 16 bits; the specification doesn't
// mention them, but these are the values every tool agrees on.
const (
	sIFMT   = 0xf000
	sIFLNK  = 0xa000
	sIFREG  = 0x8000
	sIFDIR  = 0x4000
	sISUID  = 0x800
	sISGID  = 0x400
	sISVTX  = 0x200
	creatorUnixByte = 3
	msdosDirAttr    = 0x10
	msdosReadOnly   = 0x01
)

// ExternalAttrsFromMode encodes mode into the CreatorVersion/ExternalAttrs
// pair the way a Unix-made archive records permission and file-type bits.
func ExternalAttrsFromMode(mode os.FileMode) (creatorVersion uint16, externalAttrs uint32) {
	creatorVersion = creatorUnixByte << 8
	externalAttrs = fileModeToUnixMode(mode) << 16
	if mode&os.ModeDir != 0 {
		externalAttrs |= msdosDirAttr
	}
	if mode&0o200 == 0 {
		externalAttrs |= msdosReadOnly
	}
	return
}

func fileModeToUnixMode(mode os.FileMode) uint32 {
	var m uint32
	switch mode & os.ModeType {
	case os.ModeDir:
		m = sIFDIR
	case os.ModeSymlink:
		m = sIFLNK
	default:
		m = sIFREG
	}
	if mode&os.ModeSetuid != 0 {
		m |= sISUID
	}
	if mode&os.ModeSetgid != 0 {
		m |= sISGID
	}
	if mode&os.ModeSticky != 0 {
		m |= sISVTX
	}
	return m | uint32(mode&0o777)
}

// ModeFromExternalAttrs decodes the permission and file-type bits a Unix-made
// entry stores in the high 16 bits of ExternalAttrs.
func ModeFromExternalAttrs(externalAttrs uint32) os.FileMode {
	m := externalAttrs >> 16
	mode := os.FileMode(m & 0o777)
	switch m & sIFMT {
	case sIFDIR:
		mode |= os.ModeDir
	case sIFLNK:
		mode |= os.ModeSymlink
	}
	if m&sISUID != 0 {
		mode |= os.ModeSetuid
	}
	if m&sISGID != 0 {
		mode |= os.ModeSetgid
	}
	if m&sISVTX != 0 {
		mode |= os.ModeSticky
	}
	return mode
}
