package network

// Node is a view onto one row of the model's attribute table.
type Node struct {
	model *Model
	index int
}

// ID returns the node identifier.
func (n Node) ID() ID { return n.model.ids[n.index] }

// Index returns the stable buffer offset of the node.
func (n Node) Index() int { return n.index }

// Valid reports whether the view is bound to a model.
func (n Node) Valid() bool { return n.model != nil }

// Attr returns an extra record property kept from construction.
func (n Node) Attr(key string) (any, bool) {
	attrs := n.model.attrs[n.index]
	if attrs == nil {
		return nil, false
	}
	v, ok := attrs[key]
	return v, ok
}

// Attribute accessors read and write the model arrays in place.

func (n Node) Position() Vec3 { return n.model.vec3(n.model.Positions, n.index) }
func (n Node) SetPosition(p Vec3) { n.model.setVec3(n.model.Positions, n.index, p) }
func (n Node) Color() Vec3 { return n.model.vec3(n.model.Colors, n.index) }
func (n Node) SetColor(c Vec3) { n.model.setVec3(n.model.Colors, n.index, c) }
func (n Node) OutlineColor() Vec3 { return n.model.vec3(n.model.OutlineColors, n.index) }
func (n Node) SetOutlineColor(c Vec3) { n.model.setVec3(n.model.OutlineColors, n.index, c) }

func (n Node) Size() float32 { return n.model.Sizes[n.index] }
func (n Node) SetSize(s float32) { n.model.Sizes[n.index] = s }
func (n Node) OutlineWidth() float32 { return n.model.OutlineWidths[n.index] }
func (n Node) SetOutlineWidth(w float32) { n.model.OutlineWidths[n.index] = w }
func (n Node) Intensity() float32 { return n.model.Intensities[n.index] }
func (n Node) SetIntensity(i float32) { n.model.Intensities[n.index] = i }
