// Package types defines the contact entity, filter criteria, the observable
// store state, the ContactCollection interface every remote backend satisfies,
// and the error taxonomy shared by the client, the store and the CLI.
package types
