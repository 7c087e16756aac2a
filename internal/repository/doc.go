// Package repository holds the storage-level errors shared by the sqlite
// adapters and the domain services. Interfaces live with the services that
// consume them; mocks for them live in the mocks subpackage.
package repository
