// Package core contains the business logic for the Content Shield API.
// It is designed to be framework-agnostic and can be used independently
// of any web framework or infrastructure concerns.
//
// The core package is organized into several sub-packages:
//
// - domain: Pure domain models (DetectionResult, ContentBlock, PageAnalysis, etc.)
// - detection: Text/image detection pipeline with caching, chunking and retries
// - providers: Detection backend adapters (mock, Sapling, Hive, model service)
// - extract: Navigation-aware content block extraction from HTML documents
// - fingerprint: Content dedup fingerprints and stable block reference IDs
// - scan: Event-driven page scan controller (mutations, scrolls, navigations)
// - aggregate: Page-level score aggregation and tiering
// - bus: In-process message bus connecting the scan controller to consumers
// - errors: Custom error types for better error handling
// - interfaces: Contracts for external dependencies (cache, HTTP, logger)
//
// # Design Principles
//
// The core package follows clean architecture principles:
// - No external framework dependencies
// - All external dependencies are injected via interfaces
// - Business logic is testable in isolation
// - Domain models are free from persistence concerns
//
// # Usage Example
//
//	import (
//	    "content-shield-api/core/detection"
//	    "content-shield-api/core/interfaces"
//	    "content-shield-api/core/providers"
//	)
//
//	// Create dependencies
//	deps := interfaces.Dependencies{
//	    Cache:      myCache,      // implements interfaces.Cache
//	    HTTPClient: myHTTPClient, // implements interfaces.HTTPClient
//	    Logger:     myLogger,     // implements interfaces.Logger
//	}
//
//	// Create service
//	provider := providers.New(providers.Config{Name: "mock"}, deps)
//	svc := detection.NewService(provider, deps, detection.Config{})
//
//	// Score text
//	result, err := svc.DetectText(ctx, "some suspiciously fluent paragraph")
//
package core
