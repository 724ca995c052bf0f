// Package ui provides the FoodBridge terminal client built on Bubble Tea.
//
// # Architecture Overview
//
// The Model is a plain tea.Model. It never owns entity data: Run subscribes to
// the state.Store and forwards each published snapshot to the program as a
// stateMsg, so the view always renders the latest store value. Once the
// program exits Send is a no-op, which is how late thunk results are dropped
// for an unmounted view.
//
// Update never dispatches to the store. Every mutation runs as a tea.Cmd that
// calls a thunk with a bounded context; the thunk dispatches, the bus notifies
// the subscription, and the command itself reports an opDoneMsg for the
// status line.
//
// # Package Structure
//
//   - app.go: Model, Update/View and Run
//   - commands.go: messages and the thunk-backed commands
//   - tabs.go: per-role tab sets and table rendering
//   - login.go: sign-in form with inline field errors
//   - logs.go: client log viewer over logtail
//   - modal.go: confirmation dialogs
//   - theme.go, keys.go, help.go: look and key bindings
//
// # Tabs
//
// The visible tabs depend on the session role:
//
//   - ADMIN: centers, listings, providers, logs
//   - PROVIDER: listings (own), centers, tax records, logs
//   - RECIPIENT: listings (allergen-safe), reservations, alerts, centers, logs
//
// Anonymous sessions see the login form. A tab hidden by a role change falls
// back to the first tab of the new role.
//
// # Key Bindings
//
//   - Tab/Shift+Tab or h/l: switch tabs
//   - j/k, g/G: move the selection
//   - r: refresh the current tab
//   - d: delete the selected row (admin centers, provider listings)
//   - a: pause or resume the selected allergen alert
//   - Space: toggle log follow
//   - T: cycle theme (saved to prefs)
//   - L: log out
//   - ?: help
//   - q or Ctrl+C: quit
package ui
