package guildcal

import "strconv"

// ValidID checks that id is a decimal snowflake, which is the only form
// used for storage keys and URLs.
func ValidID(id string) bool {
	if id == "" {
		return false
	}
	_, err := strconv.ParseUint(id, 10, 64)
	return err == nil
}
