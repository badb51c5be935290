package transfer

import (
	"errors"
	"fmt"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
)

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeNotFound
	outcomeRemoteError
)

func (k outcomeKind) String() string {
	switch k {
	case outcomeSuccess:
		return "success"
	case outcomeNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

type outcome struct {
	kind     outcomeKind
	objectID string
	object   *model.RemoteObject
	err      error
}

func (o outcome) message() string {
	switch o.kind {
	case outcomeNotFound:
		if o.err == nil || errors.Is(o.err, store.ErrObjectNotFound) {
			return fmt.Sprintf("Object not found: %s", o.objectID)
		}
		return fmt.Sprintf("%s: %v", o.objectID, o.err)
	case outcomeRemoteError:
		return fmt.Sprintf("%s: %v", o.object.ObjectName, o.err)
	}
	return ""
}

// fold aggregates per-object outcomes. Errors keeps the first MaxErrors
// messages and summarizes the rest in one trailing line.
func fold(outcomes []outcome) Result {
	res := Result{Errors: []string{}}
	dropped := 0
	for _, o := range outcomes {
		if o.kind == outcomeSuccess {
			res.Succeeded++
			continue
		}
		res.Failed++
		if len(res.Errors) < MaxErrors {
			res.Errors = append(res.Errors, o.message())
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		res.Errors = append(res.Errors, fmt.Sprintf("... and %d more errors", dropped))
	}
	return res
}
