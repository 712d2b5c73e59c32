// Package categories registers the jewellery, gemstone and diamond
// categories with the core registry.
// Import this package to ensure all categories are registered.
package categories

// This file exists to provide a single import point.
// Each category file uses init() to register its definition.
