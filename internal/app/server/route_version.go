package server

import (
	"net/http"

	"github.com/soheilgoodarzi/domain-manager-assessment/internal/app/version"
)

func getVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, version.GetInfo())
}
