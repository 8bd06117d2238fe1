package tree

// intBuffer is a reusable int slice with an explicit length, used by the
// index split and merge routines to avoid reallocating per node.
type intBuffer struct {
	data []int
	size int
}

func newIntBuffer(capacity int) *intBuffer {
	return &intBuffer{data: make([]int, capacity)}
}

func (b *intBuffer) grow(requested int) {
	if requested > len(b.data) {
		newCap := len(b.data) + (len(b.data) >> 1)
		if newCap < requested {
			newCap = requested
		}
		grown := make([]int, newCap)
		copy(grown, b.data)
		b.data = grown
	}
}

func (b *intBuffer) fill(other []int) {
	if len(other) > len(b.data) {
		b.data = make([]int, len(other))
	}
	copy(b.data, other)
	b.size = len(other)
}

func (b *intBuffer) copyOut() []int {
	out := make([]int, b.size)
	copy(out, b.data[:b.size])
	return out
}

// mergeInto merges the sorted input buffer with the sorted other slice,
// writing the union into output. Inputs must contain unique values.
func mergeInto(input *intBuffer, other []int, output *intBuffer) {
	newSize := input.size + len(other)
	output.grow(newSize)

	i, j, k := 0, 0, 0
	for i < input.size || j < len(other) {
		switch {
		case i == input.size:
			output.data[k] = other[j]
			j++
		case j == len(other):
			output.data[k] = input.data[i]
			i++
		case input.data[i] < other[j]:
			output.data[k] = input.data[i]
			i++
		default:
			output.data[k] = other[j]
			j++
		}
		k++
	}
	output.size = k
}

// removeOther returns the sorted values of input that are not present
// in other. Both slices must be sorted and duplicate free.
func removeOther(input, other []int) []int {
	capacity := len(input) - len(other)
	if capacity < 0 {
		capacity = 0
	}
	out := make([]int, 0, capacity)
	j := 0
	for _, v := range input {
		for j < len(other) && other[j] < v {
			j++
		}
		if j < len(other) && other[j] == v {
			j++
			continue
		}
		out = append(out, v)
	}
	return out
}

// mergeSorted merges a list of sorted, duplicate-free int slices into a
// single sorted slice using the two supplied buffers.
func mergeSorted(input [][]int, first, second *intBuffer) []int {
	if len(input) == 0 {
		return []int{}
	}
	first.fill(input[0])
	for i := 1; i < len(input); i++ {
		mergeInto(first, input[i], second)
		first, second = second, first
	}
	return first.copyOut()
}

// MergeIndices merges sorted, duplicate-free index lists into a single
// sorted list.
func MergeIndices(lists [][]int) []int {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	return mergeSorted(lists, newIntBuffer(total), newIntBuffer(total))
}

// RemoveOther returns the sorted values of input not present in other.
// Both inputs must be sorted and duplicate free.
func RemoveOther(input, other []int) []int {
	return removeOther(input, other)
}

// SplitFeatures partitions every feature's inverted lists between the
// left and right branch index sets.
func SplitFeatures(data []*TreeFeature, leftIndices, rightIndices []int) (left, right []*TreeFeature) {
	first := newIntBuffer(len(leftIndices) + 1)
	second := newIntBuffer(len(leftIndices) + 1)
	left = make([]*TreeFeature, len(data))
	right = make([]*TreeFeature, len(data))
	for i, f := range data {
		left[i], right[i] = f.Split(leftIndices, rightIndices, first, second)
	}
	return left, right
}
