// Command parley inspects, validates, and rewrites binary container files:
// conversations, quest journals, and creature blueprints.
package main
