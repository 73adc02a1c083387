// Package domain defines the core business entities for Themescope.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Visit: A single browsing-history record
//   - TopicFit / Topic: Output of the topic-model primitive
//   - ThemeRecord: An analysed theme with representatives and consistency
//   - AggregatedTheme / AggregatedSubtheme / Source: The nested interest map
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
