package model

import (
	"fmt"
	"sort"
	"strings"
)

// Profile is the user role that selects a dashboard view.
type Profile string

const (
	ProfileOrders     Profile = "commande"
	ProfileStorage    Profile = "stockage"
	ProfileTransport  Profile = "transport"
	ProfileSupervisor Profile = "superviseur"
)

var profileLabels = map[Profile]string{
	ProfileOrders:     "Gestionnaire Commande",
	ProfileStorage:    "Gestionnaire Stockage",
	ProfileTransport:  "Gestionnaire Transport",
	ProfileSupervisor: "Superviseur",
}

// Profiles lists every profile in login-form order.
var Profiles = []Profile{ProfileOrders, ProfileStorage, ProfileTransport, ProfileSupervisor}

// Label returns the login-form label of the profile.
func (p Profile) Label() string {
	return profileLabels[p]
}

// InvalidProfileError reports an unknown profile name.
type InvalidProfileError struct {
	Value string
}

func (e *InvalidProfileError) Error() string {
	names := make([]string, 0, len(profileLabels))
	for k := range profileLabels {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid profile %q, expected one of: %s", e.Value, strings.Join(names, ", "))
}

// ParseProfile normalizes and validates a profile name.
func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := profileLabels[p]; !ok {
		return "", &InvalidProfileError{Value: s}
	}
	return p, nil
}
