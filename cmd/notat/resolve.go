package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mkarlsen/notat/internal/models"
)

var (
	errNoteNotFound    = errors.New("no note matches id")
	errAmbiguousPrefix = errors.New("ambiguous id prefix")
)

// resolveID returns the note whose id equals, or uniquely starts with, the
// given prefix. Matching is case-insensitive; an exact id always wins.
func resolveID(notes []models.Note, idOrPrefix string) (models.Note, error) {
	needle := strings.ToLower(strings.TrimSpace(idOrPrefix))
	if needle == "" {
		return models.Note{}, errNoteNotFound
	}

	var match *models.Note
	for i := range notes {
		idLower := strings.ToLower(notes[i].ID)
		if idLower == needle {
			return notes[i], nil
		}
		if !strings.HasPrefix(idLower, needle) {
			continue
		}
		if match != nil {
			return models.Note{}, fmt.Errorf("%w: %s", errAmbiguousPrefix, idOrPrefix)
		}
		match = &notes[i]
	}

	if match == nil {
		return models.Note{}, fmt.Errorf("%w: %s", errNoteNotFound, idOrPrefix)
	}
	return *match, nil
}

// resolveIDs maps every argument through resolveID, keeping argument order.
func resolveIDs(notes []models.Note, args []string) ([]string, error) {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		n, err := resolveID(notes, arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, n.ID)
	}
	return ids, nil
}
