// Package storeerr defines the error kinds shared by every layer of the
// storage engine (page, disk, buffer, index; codec panics instead of
// returning errors). Kinds are sentinel
// values so callers can classify a failure with errors.Is regardless of
// how much context has been wrapped around it.
package storeerr

import "github.com/pkg/errors"

// Kind is a storage engine error category, per the taxonomy in spec §7.
type Kind error

var (
	// IoError is an underlying filesystem failure.
	IoError Kind = errors.New("io error")
	// UnknownPageId is a disk manager lookup miss.
	UnknownPageId Kind = errors.New("unknown page id")
	// NoFreePages means empty_pages is exhausted.
	NoFreePages Kind = errors.New("no free pages")
	// AllPagesPinned means the eviction scan found no unpinned victim.
	AllPagesPinned Kind = errors.New("all pages pinned")
	// OutOfBufferSlots is returned to find_page's caller when eviction fails.
	OutOfBufferSlots Kind = errors.New("out of buffer slots")
	// PageFull means a slotted-page insert would overrun the page.
	PageFull Kind = errors.New("page full")
	// CorruptPage means a magic mismatch or invalid type tag.
	CorruptPage Kind = errors.New("corrupt page")
	// WrongPageType means a view/type mismatch (programming error).
	WrongPageType Kind = errors.New("wrong page type")
)

// Wrap attaches caller context to a Kind while keeping it matchable with
// errors.Is(err, kind).
func Wrap(kind Kind, format string, args ...any) error {
	return errors.Wrapf(kind, format, args...)
}

// Is reports whether err is, or wraps, the given Kind.
func Is(err error, kind Kind) bool {
	return errors.Is(err, kind)
}
