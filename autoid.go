package docmap

import (
	"crypto/rand"
	"io"
	"reflect"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var ulidType = reflect.TypeFor[ulid.ULID]()

// idState backs auto id generation. It is shared by a descriptor and all
// drafts cloned from it, so sequences survive re-publication.
type idState struct {
	mu      sync.Mutex
	seq     int64
	entropy io.Reader
}

func newIDState() *idState {
	return &idState{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (s *idState) nextULID() ulid.ULID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy)
}

func (s *idState) nextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// SeedSequence makes the next integer id greater than last.
func (e *EntityDescriptor) SeedSequence(last int64) {
	e.ids.mu.Lock()
	if last > e.ids.seq {
		e.ids.seq = last
	}
	e.ids.mu.Unlock()
}

// AssignID fills a zero identifier on obj (a *T) when the identifier member
// has AutoID set. String ids get a ULID, integer ids the next value of the
// descriptor's sequence. It returns the identifier and whether it was generated.
func (e *EntityDescriptor) AssignID(obj any) (any, bool, error) {
	id, ok := e.ID()
	if !ok {
		return nil, false, nil
	}
	cur := id.Getter(obj)
	if !id.AutoID || !isZeroValue(cur) {
		return cur, false, nil
	}
	if id.Setter == nil {
		return nil, false, InvalidArgument(e.path(id.MemberName), "identifier is read-only")
	}
	var v any
	switch {
	case id.DataType == ulidType:
		v = e.ids.nextULID()
	case id.DataType.Kind() == reflect.String:
		v = e.ids.nextULID().String()
	case isIntKind(id.DataType.Kind()):
		v = e.ids.nextSeq()
	default:
		return nil, false, InvalidArgument(e.path(id.MemberName), "auto id is not supported for "+id.DataType.String())
	}
	if err := id.Setter(obj, v); err != nil {
		return nil, false, err
	}
	return id.Getter(obj), true, nil
}

func isZeroValue(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}
