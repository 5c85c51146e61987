// Package registry owns every installed Mod. It enforces mod identity under
// the manager-mode policy, answers lookups, and cascades removals and
// replacements into the modpack graph. Each mutation emits exactly one
// types.ChangeSet to the attached Notifier.
package registry
