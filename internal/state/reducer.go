package state

import (
	"slices"

	"github.com/mkarlsen/notat/internal/models"
)

const (
	defaultLoadError = "Failed to load notes."
	defaultSaveError = "Failed to save."
)

// Reduce applies one action to the state and returns the next state.
// It never mutates its input: note slices are cloned before any change,
// so callers may hold on to old snapshots.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case LoadStart:
		s.Status = StatusLoading
		s.Err = ""
		return s

	case LoadSuccess:
		notes := models.SortedNotes(a.Notes)
		s.Notes = notes
		s.SelectedID = pickSelection(notes, a.SelectID, s.SelectedID)
		s.Status = StatusIdle
		s.Err = ""
		return s

	case LoadError:
		s.Status = StatusError
		s.Err = messageOr(a.Message, defaultLoadError)
		return s

	case SetFilter:
		s.Filter = a.Filter
		return s

	case PatchFilter:
		s.Filter = a.Patch.Apply(s.Filter)
		return s

	case SelectNote:
		s.SelectedID = a.ID
		s.ListOpen = false
		return s

	case ToggleListMobile:
		s.ListOpen = !s.ListOpen
		return s

	case CreateNote:
		notes := make([]models.Note, 0, len(s.Notes)+1)
		notes = append(notes, a.Note)
		notes = append(notes, s.Notes...)
		models.SortNotes(notes)
		s.Notes = notes
		s.SelectedID = a.Note.ID
		s.ListOpen = false
		return s

	case UpdateNote:
		i := indexOf(s.Notes, a.ID)
		if i < 0 {
			return s
		}
		notes := slices.Clone(s.Notes)
		notes[i] = a.Patch.Apply(notes[i])
		models.SortNotes(notes)
		s.Notes = notes
		return s

	case TogglePinNote:
		i := indexOf(s.Notes, a.ID)
		if i < 0 {
			return s
		}
		notes := slices.Clone(s.Notes)
		notes[i].IsPinned = !notes[i].IsPinned
		models.SortNotes(notes)
		s.Notes = notes
		return s

	case DeleteNote:
		return removeNotes(s, map[string]bool{a.ID: true})

	case BulkPinNotes:
		ids := idSet(a.IDs)
		notes := slices.Clone(s.Notes)
		changed := false
		for i := range notes {
			if ids[notes[i].ID] && notes[i].IsPinned != a.Pinned {
				notes[i].IsPinned = a.Pinned
				changed = true
			}
		}
		if !changed {
			return s
		}
		models.SortNotes(notes)
		s.Notes = notes
		return s

	case BulkDeleteNotes:
		return removeNotes(s, idSet(a.IDs))

	case SaveStart:
		s.Status = StatusSaving
		s.Err = ""
		return s

	case SaveEnd:
		s.Status = StatusIdle
		s.Err = ""
		return s

	case SaveError:
		s.Status = StatusError
		s.Err = messageOr(a.Message, defaultSaveError)
		return s

	default:
		return s
	}
}

// pickSelection resolves the post-load selection: an explicit id wins,
// then the previous selection if it survived the reload, then the first
// note, then nothing.
func pickSelection(notes []models.Note, explicit, previous string) string {
	if explicit != "" {
		return explicit
	}
	if previous != "" && indexOf(notes, previous) >= 0 {
		return previous
	}
	if len(notes) > 0 {
		return notes[0].ID
	}
	return ""
}

// removeNotes drops every note whose id is in ids. Removal keeps the
// remaining order, so no re-sort is needed. If the selected note was
// removed, selection moves to the new first note.
func removeNotes(s State, ids map[string]bool) State {
	if len(ids) == 0 {
		return s
	}
	notes := make([]models.Note, 0, len(s.Notes))
	removed := false
	for _, n := range s.Notes {
		if ids[n.ID] {
			removed = true
			continue
		}
		notes = append(notes, n)
	}
	if !removed {
		return s
	}
	s.Notes = notes
	if ids[s.SelectedID] {
		if len(notes) > 0 {
			s.SelectedID = notes[0].ID
		} else {
			s.SelectedID = ""
		}
	}
	return s
}

func indexOf(notes []models.Note, id string) int {
	for i := range notes {
		if notes[i].ID == id {
			return i
		}
	}
	return -1
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
