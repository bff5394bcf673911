package topology

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoopOrderFile is written to the output directory after resolution.
const LoopOrderFile = "_loop_order.json"

// Group is a run of consecutive buildings and the GHEs that follow them.
type Group struct {
	BuildingIDs []string `json:"list_bldg_ids_in_group"`
	GHEIDs      []string `json:"list_ghe_ids_in_group"`
}

// Groups splits a loop order into building groups, each closed by the GHEs
// that come after it. Buildings after the last GHE form a final group with
// no GHE. Other district systems are skipped.
func Groups(order []Feature) []Group {
	var groups []Group
	cur := Group{BuildingIDs: []string{}, GHEIDs: []string{}}
	for _, f := range order {
		switch {
		case f.IsGHE():
			cur.GHEIDs = append(cur.GHEIDs, f.ID)
		case f.IsBuilding():
			if len(cur.GHEIDs) > 0 {
				groups = append(groups, cur)
				cur = Group{BuildingIDs: []string{}, GHEIDs: []string{}}
			}
			cur.BuildingIDs = append(cur.BuildingIDs, f.ID)
		}
	}
	if len(cur.BuildingIDs) > 0 || len(cur.GHEIDs) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// WriteLoopOrder writes groups to <outputDir>/_loop_order.json.
func WriteLoopOrder(outputDir string, groups []Group) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling loop order: %w", err)
	}
	path := filepath.Join(outputDir, LoopOrderFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing loop order: %w", err)
	}
	return path, nil
}
