// Package openapi exports synthesized forms as OpenAPI 3 schemas built with
// kin-openapi, so the property set of a form can be consumed by other tools.
package openapi
