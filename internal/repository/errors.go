// Package repository contains the data access layer for the seat catalog.
// This file defines sentinel errors shared across repository methods so
// that higher layers can use errors.Is to distinguish failure scenarios
// without inspecting error strings.
package repository

import "errors"

// ErrShowingNotFound indicates that no showing row matched the lookup.
var ErrShowingNotFound = errors.New("showing not found")

// ErrSeatRowNotFound indicates that a seat label does not exist for the
// showing it was addressed to.
var ErrSeatRowNotFound = errors.New("seat not found for showing")
