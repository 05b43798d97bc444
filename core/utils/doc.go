// Package utils provides common utility functions for the deck-sync application.
// It includes helpers for id normalization and other shared logic that doesn't fit
// into domain-specific packages.
package utils
