// Package server hosts the JSON API the ownership manager's web front end
// talks to. Handlers live in the endpoints package and reach the core
// through the interfaces on Server.
package server
