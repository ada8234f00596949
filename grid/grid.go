// Package grid implements the coordinate system and grid hierarchy that map
// world-space positions onto the integer cell lattice used by the octree
// index.
package grid

import "fmt"

// Position is an integer point position. It is exact and total only for
// values that fit the range used by the coordinate system that produced it;
// conversions outside that range return ErrOutOfRange rather than wrapping.
type Position struct {
	X, Y, Z int64
}

// LodLevel is a level of detail. 0 is the coarsest.
type LodLevel uint8

// Cell identifies a cube in the grid hierarchy at a given LOD.
type Cell struct {
	Lod  LodLevel
	X, Y, Z int32
}

// String renders the cell using the on-disk file naming scheme
// ("<lod>__<x>-<y>-<z>"), so callers can use it directly as a cache key or
// log field.
func (c Cell) String() string {
	return fmt.Sprintf("%d__%d-%d-%d", c.Lod, c.X, c.Y, c.Z)
}

// AABB is an axis-aligned bounding box in integer position space, inclusive
// of both bounds.
type AABB struct {
	Min, Max Position
}

// Contains reports whether p lies within the box (inclusive).
func (b AABB) Contains(p Position) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersects reports whether two boxes overlap.
func (b AABB) Intersects(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// Hierarchy is a single grid-shift parameter: cells at LOD L span
// 2^(Shift-L) integer units per axis. The octree uses two independent
// hierarchies — one for node sizing, one for the (typically finer) point
// sampling grid inside a node.
type Hierarchy struct {
	Shift uint16
}

// ErrOutOfRange is returned when a cell size computation or coordinate
// conversion would overflow the representable integer range.
type ErrOutOfRange struct {
	Op string
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("grid: %s out of representable range", e.Op)
}

// CellSize returns the length of one edge of a cell at the given LOD, in
// integer units.
func (h Hierarchy) CellSize(lod LodLevel) (int64, error) {
	if uint16(lod) > h.Shift {
		return 0, &ErrOutOfRange{Op: "cell size: lod exceeds shift"}
	}
	shift := h.Shift - uint16(lod)
	if shift >= 63 {
		return 0, &ErrOutOfRange{Op: "cell size: shift too large"}
	}
	return int64(1) << shift, nil
}

// CellAt returns the cell that contains the given integer position at the
// given LOD.
func (h Hierarchy) CellAt(pos Position, lod LodLevel) (Cell, error) {
	size, err := h.CellSize(lod)
	if err != nil {
		return Cell{}, err
	}
	x, err := toInt32(floorDiv(pos.X, size), "cell x")
	if err != nil {
		return Cell{}, err
	}
	y, err := toInt32(floorDiv(pos.Y, size), "cell y")
	if err != nil {
		return Cell{}, err
	}
	z, err := toInt32(floorDiv(pos.Z, size), "cell z")
	if err != nil {
		return Cell{}, err
	}
	return Cell{Lod: lod, X: x, Y: y, Z: z}, nil
}

// CellBounds returns the integer-position bounding box covered by the cell.
func (h Hierarchy) CellBounds(c Cell) (AABB, error) {
	size, err := h.CellSize(c.Lod)
	if err != nil {
		return AABB{}, err
	}
	min := Position{X: int64(c.X) * size, Y: int64(c.Y) * size, Z: int64(c.Z) * size}
	max := Position{X: min.X + size - 1, Y: min.Y + size - 1, Z: min.Z + size - 1}
	return AABB{Min: min, Max: max}, nil
}

// Parent returns the cell's single parent at Lod-1. Calling Parent on a LOD-0
// cell is a programming error; callers must check the LOD first.
func Parent(c Cell) Cell {
	return Cell{
		Lod: c.Lod - 1,
		X:   floorDiv32(c.X, 2),
		Y:   floorDiv32(c.Y, 2),
		Z:   floorDiv32(c.Z, 2),
	}
}

// Children returns the eight child cells at Lod+1, including ones that may
// not yet exist in the directory.
func Children(c Cell) [8]Cell {
	var out [8]Cell
	i := 0
	for dx := int32(0); dx < 2; dx++ {
		for dy := int32(0); dy < 2; dy++ {
			for dz := int32(0); dz < 2; dz++ {
				out[i] = Cell{
					Lod: c.Lod + 1,
					X:   c.X*2 + dx,
					Y:   c.Y*2 + dy,
					Z:   c.Z*2 + dz,
				}
				i++
			}
		}
	}
	return out
}

// ChildIndex returns which of the eight children of Parent(c) the cell c is,
// a number in [0,8) consistent with the ordering produced by Children.
func ChildIndex(c Cell) int {
	dx := c.X - floorDiv32(c.X, 2)*2
	dy := c.Y - floorDiv32(c.Y, 2)*2
	dz := c.Z - floorDiv32(c.Z, 2)*2
	return int(dx)*4 + int(dy)*2 + int(dz)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorDiv32(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func toInt32(v int64, op string) (int32, error) {
	if v < int64(int32(-1<<31)) || v > int64(int32(1<<31-1)) {
		return 0, &ErrOutOfRange{Op: op}
	}
	return int32(v), nil
}
