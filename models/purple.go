package models

import "github.com/rfielding/ctlcheck/kripke"

// Purple models the keyspace collapse of the Japanese PURPLE diplomatic
// cipher. Because the cipher splits the alphabet into independent vowel
// and consonant channels, the attacker's key hypothesis set shrinks much
// faster than for a well-designed rotor machine.
//
//	UnknownKey -> Unsolved -> VowelSolved -> ConsonantSolved -> UniqueKey
//
// Unsolved loops on itself (more traffic is observed). UniqueKey is terminal.
func Purple() *kripke.Model {
	b := newBuilder()
	b.state("UnknownKey", nil)
	b.state("Unsolved", nil)
	b.state("VowelSolved", nil, "vowelsKnown")
	b.state("ConsonantSolved", nil, "vowelsKnown", "consonantsKnown")
	b.state("UniqueKey", nil, "vowelsKnown", "consonantsKnown", "attackerKnowsKey")

	b.edge("UnknownKey", "Unsolved")
	b.edge("Unsolved", "Unsolved", "VowelSolved")
	b.edge("VowelSolved", "ConsonantSolved")
	b.edge("ConsonantSolved", "UniqueKey")

	labels := kripke.Labels()
	m := kripke.NewModel("purple", b.g)
	m.Description = "PURPLE cipher keyspace collapse as traffic is observed."
	m.AddFormula(check("key-possible", "Some path ends with the attacker knowing the key.",
		"EF attackerKnowsKey", labels))
	m.AddFormula(check("key-inevitable", "Eventually the attacker uniquely knows the key. Fails: traffic analysis may stall in Unsolved.",
		"AF attackerKnowsKey", labels))
	m.AddFormula(check("key-secret", "Key remains forever unknown (desired but false).",
		"AG !attackerKnowsKey", labels))
	m.AddFormula(check("vowels-first", "Consonants are never known before vowels.",
		"AG(consonantsKnown -> vowelsKnown)", labels))
	return m
}
