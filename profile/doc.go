// Package profile provides the project workboard profile panel: the menu
// entry that links a project's profile to its workboard.
package profile
