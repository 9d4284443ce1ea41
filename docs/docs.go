// Package docs embeds the OpenAPI document of the JSON API.
package docs

import _ "embed"

//go:embed swagger.yml
var Swagger []byte
