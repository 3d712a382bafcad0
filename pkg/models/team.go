package models

type Team struct {
	ID     string `json:"id" db:"id" yaml:"id"`
	Name   string `json:"name" db:"name" yaml:"name"`
	Region string `json:"region" db:"region" yaml:"region"`
}
