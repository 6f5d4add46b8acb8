package history

// Block is a bounded, ordered run of Items. It is the unit of incremental
// growth and removal; a Block never persists empty.
type Block struct {
	history *History
	index   int
	items   []*Item
}

func (b *Block) Len() int          { return len(b.items) }
func (b *Block) Items() []*Item    { return b.items }
func (b *Block) IndexInWindow() int { return b.index }

func (b *Block) lastItem() *Item {
	if len(b.items) == 0 {
		return nil
	}
	return b.items[len(b.items)-1]
}

// remove takes an item out of the block, renumbers the index caches of the
// items after it and fires exactly one neighbor notification. An emptied
// block deletes itself from the window.
func (b *Block) remove(item *Item) {
	if item.block != b {
		panic("history: item removed from a foreign block")
	}
	h := b.history
	h.mainViewRemoved(b, item)

	blockIndex := b.index
	itemIndex := item.indexInBlock
	item.block = nil
	item.indexInBlock = -1

	b.items = append(b.items[:itemIndex], b.items[itemIndex+1:]...)
	for i := itemIndex; i < len(b.items); i++ {
		b.items[i].indexInBlock = i
	}
	if len(b.items) == 0 {
		// Deletes this.
		h.removeBlock(b)
	} else if itemIndex < len(b.items) {
		h.notifyPrevChanged(b.items[itemIndex])
	} else if blockIndex+1 < len(h.blocks) {
		h.notifyPrevChanged(h.blocks[blockIndex+1].items[0])
	} else if len(h.blocks) > 0 {
		if last := h.blocks[len(h.blocks)-1].lastItem(); last != nil {
			h.notifyNextRemoved(last)
		}
	}
}
