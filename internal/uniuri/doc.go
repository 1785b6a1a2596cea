// Package uniuri generates the random SIWE nonces and api key secrets.
package uniuri
