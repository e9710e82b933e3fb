// Package testutil holds helpers shared by the launcher's package tests.
package testutil

// Ptr returns a pointer to v, for optional fields such as
// LauncherItem.DisplayName or WindowSettings.X in struct literals.
func Ptr[T any](v T) *T { return &v }
