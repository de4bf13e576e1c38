package room

import "github.com/wfunc/quizroom/content"

// Code-scoped entry points used by the transport layer.

func (reg *Registry) SelectContent(code, identity, contentID string) (*content.Set, error) {
	r, err := reg.Lookup(code)
	if err != nil {
		return nil, err
	}
	return r.SelectContent(identity, contentID)
}

func (reg *Registry) Join(code, identity, name string) (JoinResult, error) {
	r, err := reg.Lookup(code)
	if err != nil {
		return JoinResult{}, err
	}
	return r.Join(identity, name)
}

func (reg *Registry) Advance(code, identity string) error {
	r, err := reg.Lookup(code)
	if err != nil {
		return err
	}
	return r.Advance(identity)
}

func (reg *Registry) Submit(code, identity, answer string) error {
	r, err := reg.Lookup(code)
	if err != nil {
		return err
	}
	return r.Submit(identity, answer)
}

func (reg *Registry) Buzz(code, identity string) (bool, error) {
	r, err := reg.Lookup(code)
	if err != nil {
		return false, err
	}
	return r.Buzz(identity)
}

func (reg *Registry) Reset(code, identity string) error {
	r, err := reg.Lookup(code)
	if err != nil {
		return err
	}
	return r.Reset(identity)
}

// Disconnect marks identity as gone from the room. Unknown rooms are ignored.
func (reg *Registry) Disconnect(code, identity string) bool {
	r, err := reg.Lookup(code)
	if err != nil {
		return false
	}
	return r.Disconnect(identity)
}
