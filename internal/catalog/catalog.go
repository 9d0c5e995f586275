package catalog

import (
	"fmt"
	"strings"
)

// Plan is a sellable interview preparation kit. Price is in INR major units;
// the gateway order is created with Price * 100 paise.
type Plan struct {
	Name  string
	Price int64
}

var plans = []Plan{
	{Name: "JS Interview Preparation Kit", Price: 49},
	{Name: "Java Interview Preparation Kit", Price: 49},
	{Name: "DSA Interview Preparation Kit", Price: 99},
	{Name: "System Design Interview Preparation Kit", Price: 99},
	{Name: "Complete Interview Preparation Bundle", Price: 199},
}

func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

func Find(name string) (Plan, bool) {
	for _, p := range plans {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Plan{}, false
}

// Resolver maps plan names to Drive folder ids. The map comes from
// environment config, not the database.
type Resolver struct {
	folders map[string]string
}

func NewResolver(folders map[string]string) *Resolver {
	normalized := make(map[string]string, len(folders))
	for name, id := range folders {
		normalized[strings.ToLower(strings.TrimSpace(name))] = id
	}
	return &Resolver{folders: normalized}
}

func (r *Resolver) FolderID(planName string) (string, error) {
	id, ok := r.folders[strings.ToLower(strings.TrimSpace(planName))]
	if !ok || id == "" {
		return "", fmt.Errorf("no folder configured for plan %q", planName)
	}
	return id, nil
}
