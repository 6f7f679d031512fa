// Package suspect provides Suspect, an observable object with two
// properties, and Store, the set of suspects served by the demo server.
//
// Every getter reports the read to the suspect's registrar and every setter
// announces the write, so a report rendered under observation.Track is
// re-rendered only when a property it actually read changes.
package suspect
