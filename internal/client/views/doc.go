// Package views holds the headless controllers behind each screen: the group
// list with its search, a group's detail page and the profile page. They own
// the screen state, call the backend, and report outcomes through the
// notifier; the CLI only renders what they expose.
//
// Every mutation goes through Runner.Run, which guards against double
// submission, notifies success or failure, and re-fetches on success.
package views
