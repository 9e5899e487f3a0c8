// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the TaskMaster UI building blocks.

Components follow the Bubble Tea shape: value types with an Update method
returning the updated copy and a command, plus View. They never call the
network; they emit request messages (LoginSubmitMsg, CreateTodoMsg,
SavePreferencesMsg, ...) and the root model performs the work.

# Session Timeout Warning

WarningDialog is shown when the activity tracker enters its warning phase.
It counts down once per second from the configured warning timeout:

	cmd := dialog.Show(30 * time.Second)

"s" or enter emits StayLoggedInMsg; "l" or "q" emits ForceLogoutMsg. When
the counter reaches zero it emits ForceLogoutMsg{Countdown: true}. The
counter is cosmetic; the tracker's logout timer ends the session on its own.

# Other Components

	Header     - brand, view tabs and the signed-in user
	StatusBar  - auto-logout summary, transient messages, key hints
	LoginForm  - sign in and sign up
	TodoList   - todos with toggle, delete and inline creation
	PrefsForm  - auto-logout and "stay signed in" settings
*/
package components
