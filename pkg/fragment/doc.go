// Package fragment resolves named markup fragments into view containers
// and drives section navigation. Components are fetched once and cached
// until invalidated; sections represent transient views and are re-fetched
// on every load.
//
// Fragments ship no executable code: each section declares a View with the
// loader's registry, and the loader invokes Init/Teardown explicitly when
// the section enters or leaves the content container.
package fragment
