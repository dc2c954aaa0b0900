// README: Trip catalog entries; read-only to the ordering flow.
package catalog

import "travelbook/internal/types"

type Trip struct {
	ID          types.ID
	Name        string
	Category    string
	Region      string
	Description string
	ImageURL    string
}
