package core

import (
	"testing"

	"fmeacore/testutil"
)

func TestCoreDoesNotImportOuterLayers(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.OuterLayerImportForbidden, "core must not depend on adapters, cli or config")
}
