// Package utility serves the host diagnostic endpoint the storefront
// footer displays.
package utility

import (
	"net/http"
	"os"

	"atsea/pkg/kit"
)

type containerID struct {
	Hostname string `json:"hostname"`
}

// ContainerIDHandler answers GET /utility/containerid/ with the serving
// host's name, so a load-balanced deployment shows which replica answered.
func ContainerIDHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host, err := os.Hostname()
		if err != nil {
			host = "unknown"
		}
		kit.WriteJSON(w, http.StatusOK, containerID{Hostname: host})
	}
}
