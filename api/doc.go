// Package api defines the wire-level request and response types of the
// routing gateway's HTTP API.
//
// This package contains the DTOs in types.go; the swag annotations that
// describe each endpoint live on the handlers in api/handlers.
//
// # API Overview
//
// The gateway provides a RESTful API for:
//   - Chat completions routed across multiple LLM providers
//   - Aggregate routing statistics (cache tiers, provider health)
//   - Budget usage summaries per user/team/company scope
//   - Cache invalidation
//   - Health monitoring
//
// # Base URL
//
// The default base URL for the API is:
//
//	http://localhost:8080
//
// # OpenAPI Specification
//
// No specification file is checked in and the gateway does not serve one;
// swag generates it from the handler annotations.
//
// # Generating Documentation
//
// To generate Swagger documentation using swag:
//
//	swag init -g cmd/gateway/main.go -o api --parseDependency --parseInternal
package api
