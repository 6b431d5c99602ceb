// Package domain contains the core entities and value objects of the card
// generation pipeline: generation requests and modes, the typed artifact
// addressing scheme, the card extraction result, and the error taxonomy shared
// by the service and API layers. It is independent of any infrastructure.
package domain
