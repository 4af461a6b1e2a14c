// Package async fans independent calls out over goroutines.
//
// [Collect] runs one call per key, waits for all of them and reports every
// failure. The CLI uses it to query several clusters at once.
package async
