// Package ui renders command lifecycle events for operators reading console logs.
package ui
