// Package entities contains the GORM models of the normalized destination
// schema. Every model uses a string UUID primary key and declares its
// belongs-to relations so AutoMigrate creates the foreign key constraints.
package entities
