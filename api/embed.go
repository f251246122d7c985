// Package api holds the OpenAPI document served next to the REST routes.
package api

import _ "embed"

//go:embed openapi.yml
var OpenAPI []byte
