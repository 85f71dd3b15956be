// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package analysisutil contains utility functions for the scanners.
// These functions are in an internal package because they are not important
// enough to be included in the main library.
package analysisutil

import (
	"fmt"
	"go/types"

	"github.com/awslabs/ar-go-pii/analysis/config"
)

// FindTypePackage finds the package declaring t or returns an error
// Returns a package path and the name of the type declared in that package
func FindTypePackage(t types.Type) (string, string, error) {
	switch typ := t.(type) {
	case *types.Pointer:
		return FindTypePackage(typ.Elem()) // recursive call
	case *types.Alias:
		return FindTypePackage(types.Unalias(typ))
	case *types.Named:
		// Return package path, type name
		obj := typ.Obj()
		if obj != nil {
			pkg := obj.Pkg()
			if pkg != nil {
				return pkg.Path(), obj.Name(), nil
			} else {
				// obj is in Universe
				return "", obj.Name(), nil
			}

		} else {
			return "", "", fmt.Errorf("could not get name")
		}

	case *types.Array:
		return FindTypePackage(typ.Elem()) // recursive call
	case *types.Map:
		return FindTypePackage(typ.Elem()) // recursive call
	case *types.Slice:
		return FindTypePackage(typ.Elem()) // recursive call
	case *types.Chan:
		return FindTypePackage(typ.Elem()) // recursive call
	case *types.Basic, *types.Tuple, *types.Interface, *types.Signature:
		// We ignore this for now (tuple may involve multiple packages)
		return "", "", fmt.Errorf("not a type with a package and name")
	case *types.Struct:
		// Anonymous structs
		return "", "", fmt.Errorf("%s: not a type with a package and name", typ)
	default:
		return "", "", fmt.Errorf("unexpected type %T", typ)
	}
}

// FuncCodeIdentifier returns the code identifier of a function or method: the path of its package, the name of its
// receiver type (with a leading * for pointer receivers) and its name.
func FuncCodeIdentifier(fn *types.Func) config.CodeIdentifier {
	cid := config.CodeIdentifier{Method: fn.Name()}
	if fn.Pkg() != nil {
		cid.Package = fn.Pkg().Path()
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Recv() == nil {
		return cid
	}
	recv := sig.Recv().Type()
	_, name, err := FindTypePackage(recv)
	if err != nil {
		// methods of anonymous interfaces
		cid.Receiver = "interface"
		return cid
	}
	if _, isPtr := recv.(*types.Pointer); isPtr {
		name = "*" + name
	}
	cid.Receiver = name
	return cid
}
