package api_test

import (
	"bufio"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeskul/waha-sync/internal/api"
)

// contractRoutes lists "METHOD /path" pairs declared under paths in the YAML.
func contractRoutes(t *testing.T) []string {
	t.Helper()

	f, err := os.Open("../../api/openapi.yaml")
	require.NoError(t, err)
	defer f.Close()

	var routes []string
	var inPaths bool
	var current string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "paths:":
			inPaths = true
		case inPaths && line != "" && !strings.HasPrefix(line, " "):
			inPaths = false
		case inPaths && strings.HasPrefix(line, "  /"):
			current = strings.TrimSuffix(strings.TrimSpace(line), ":")
		case inPaths && current != "" && strings.HasPrefix(line, "    ") && !strings.HasPrefix(line, "     "):
			method := strings.TrimSuffix(strings.TrimSpace(line), ":")
			switch method {
			case "get", "post", "put", "patch", "delete":
				routes = append(routes, strings.ToUpper(method)+" "+current)
			}
		}
	}
	require.NoError(t, scanner.Err())

	return routes
}

func TestHandler_RoutesMatchContract(t *testing.T) {
	router, ok := api.Handler(nil).(chi.Routes)
	require.True(t, ok)

	var routed []string
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routed = append(routed, method+" "+route)
		return nil
	})
	require.NoError(t, err)

	contract := contractRoutes(t)
	require.NotEmpty(t, contract)
	assert.ElementsMatch(t, contract, routed)
}
