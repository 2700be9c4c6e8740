package csvstore

import "path/filepath"

// Resource names one of the persisted collections.
type Resource string

const (
	ResourceTeams   Resource = "teams"
	ResourceGames   Resource = "games"
	ResourceMatches Resource = "matches"
)

// Resources lists every persisted collection in save order.
var Resources = []Resource{ResourceTeams, ResourceGames, ResourceMatches}

func (r Resource) FileName() string {
	return string(r) + ".csv"
}

func resourcePath(dir string, r Resource) string {
	return filepath.Join(dir, r.FileName())
}
