// Package main is the entry point of Ponto Admin, the back office for
// employee attendance, payroll and PIX payment exports. It serves a JSON API
// with fiber, persists through gorm and guards every operation with per-user
// permission sets.
package main
