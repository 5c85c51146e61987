package testutil

import "github.com/arthur-debert/modkeeper/pkg/types"

// Credentials returns throwaway catalog credentials.
func Credentials() types.Credentials {
	return types.Credentials{Username: "tester", Token: "token"}
}
