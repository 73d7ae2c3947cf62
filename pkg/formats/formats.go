// Package formats provides parsers and writers for 3D mesh file formats.
//
// Wavefront OBJ is read by ParseOBJ and written by WriteOBJ.
package formats
