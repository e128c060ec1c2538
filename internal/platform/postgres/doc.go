// Package postgres implements the store interfaces against PostgreSQL
// using database/sql with the pgx driver. Status transitions use guarded
// updates so concurrent duplicate task deliveries cannot both move a job.
package postgres
