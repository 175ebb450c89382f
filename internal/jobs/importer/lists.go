package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ternarybob/subimport/internal/interfaces"
)

// ResolveListIDs turns list references into ids. A reference is either a
// positive numeric id or a list name (case-insensitive). Lists are fetched
// only when a name has to be resolved. Duplicates are dropped, order is kept.
func ResolveListIDs(ctx context.Context, api interfaces.ImportAPI, refs []string) ([]int, error) {
	var (
		ids    []int
		seen   = make(map[int]bool)
		byName map[string]int
	)

	for _, raw := range refs {
		ref := strings.TrimSpace(raw)
		if ref == "" {
			continue
		}

		id, err := strconv.Atoi(ref)
		if err != nil {
			if byName == nil {
				lists, err := api.GetLists(ctx)
				if err != nil {
					return nil, fmt.Errorf("failed to fetch lists: %w", err)
				}
				byName = make(map[string]int, len(lists))
				for _, l := range lists {
					byName[strings.ToLower(l.Name)] = l.ID
				}
			}

			var ok bool
			id, ok = byName[strings.ToLower(ref)]
			if !ok {
				return nil, fmt.Errorf("unknown list %q", ref)
			}
		} else if id <= 0 {
			return nil, fmt.Errorf("invalid list id %d", id)
		}

		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	return ids, nil
}
