// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package querynode

import (
	"fmt"
	"strings"

	"gitlab.com/hashledger/querynode/pkg/protocol"
)

const unknownVersion = "version unknown"

// Version and Commit are set at build time with -ldflags.
var Version = unknownVersion
var Commit = ""

// ProtocolVersion is the version of the query protocol the node speaks.
var ProtocolVersion = protocol.SemanticVersion{Major: 0, Minor: 30, Patch: 0}

func IsVersionKnown() bool {
	return Version != unknownVersion
}

// NodeVersion parses Version as a semantic version. An unknown or
// unparseable version is 0.0.0.
func NodeVersion() protocol.SemanticVersion {
	var v protocol.SemanticVersion
	if !IsVersionKnown() {
		return v
	}
	s := strings.TrimPrefix(Version, "v")
	s, _, _ = strings.Cut(s, "-")
	_, err := fmt.Sscanf(s, "%d.%d.%d", &v.Major, &v.Minor, &v.Patch)
	if err != nil {
		return protocol.SemanticVersion{}
	}
	return v
}
