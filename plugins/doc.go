// Package plugins hosts the bundled species-pack subpackages. It contains no
// runtime code itself; this file anchors the architectural guard test that
// lives alongside the packs.
//
// Packs build exclusively against the stable facade in pkg/stockpluginapi.
// They must not import the domain model or any internal package: the facade
// re-exports nothing, so a pack compiled against one release keeps working
// across internal refactors. The guard test in this directory enforces that
// boundary for every pack source file.
package plugins
